package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/huangang/lvepanel/internal/datastore"
)

// SuccessCloseDelay is how long the confirmation stays up before the form
// closes and the list is refreshed.
const SuccessCloseDelay = 1500 * time.Millisecond

// UsernameRequiredMessage is shown when the form is submitted without a username.
const UsernameRequiredMessage = "Имя пользователя обязательно"

// CreatedMessage is the confirmation shown after a successful create.
const CreatedMessage = "Пользователь создан и доступы работают"

var (
	ErrSubmitInFlight        = errors.New("create form: submit already in progress")
	ErrFormLocked            = errors.New("create form: fields are locked")
	ErrInvalidDatabaseEngine = errors.New("create form: database type must be mysql or postgresql")
	ErrFormNotSucceeded      = errors.New("create form: nothing to complete")
)

// FormState is one of FormEditing, FormSubmitting or FormSucceeded.
type FormState interface {
	formState()
}

// FormEditing accepts input. Err holds the message of the last failed submit.
type FormEditing struct {
	Err string
}

// FormSubmitting has an insert in flight; input is disabled.
type FormSubmitting struct{}

// FormSucceeded shows the confirmation until CloseAfter has passed.
type FormSucceeded struct {
	CloseAfter time.Duration
}

func (FormEditing) formState()    {}
func (FormSubmitting) formState() {}
func (FormSucceeded) formState()  {}

// SystemUserCreator performs the insert behind a form submit.
type SystemUserCreator interface {
	Create(ctx context.Context, req *CreateSystemUserRequest) error
}

// CreateUserForm is the create-user dialog: its field values, the version
// choices, and where it is in editing -> submitting -> succeeded.
type CreateUserForm struct {
	mu         sync.Mutex
	values     CreateSystemUserRequest
	options    VersionBuckets
	state      FormState
	onSuccess  func()
	closeAfter time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewCreateUserForm returns a form in the editing state. onSuccess runs once
// the confirmation delay of a successful submit has passed; it may be nil.
func NewCreateUserForm(onSuccess func()) *CreateUserForm {
	return &CreateUserForm{
		values: CreateSystemUserRequest{
			PHPVersion:      "8.2",
			NodeJSVersion:   "20.x",
			DatabaseType:    string(EngineMySQL),
			DatabaseVersion: "8.0",
		},
		// shown until the store answers
		options:    VersionBuckets{PHP: []string{"7.4", "8.2"}},
		state:      FormEditing{},
		onSuccess:  onSuccess,
		closeAfter: SuccessCloseDelay,
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *CreateUserForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Values returns a copy of the current field values.
func (f *CreateUserForm) Values() CreateSystemUserRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *CreateUserForm) Options() VersionBuckets {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.options
}

// ApplyVersions installs the loaded version lists and pre-selects the first
// PHP, Node.js and database version where a list is non-empty.
func (f *CreateUserForm) ApplyVersions(lookup *VersionLookup) {
	if lookup == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.options = lookup.Buckets
	if v, ok := lookup.Default(CategoryPHP); ok {
		f.values.PHPVersion = v
	}
	if v, ok := lookup.Default(CategoryNodeJS); ok {
		f.values.NodeJSVersion = v
	}
	engine, _ := ParseDatabaseEngine(f.values.DatabaseType)
	if v, ok := lookup.Default(engine.Category()); ok {
		f.values.DatabaseVersion = v
	}
}

func (f *CreateUserForm) edit(apply func(v *CreateSystemUserRequest)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.(FormEditing); !ok {
		return ErrFormLocked
	}
	apply(&f.values)
	return nil
}

func (f *CreateUserForm) SetUsername(username string) error {
	return f.edit(func(v *CreateSystemUserRequest) { v.Username = username })
}

func (f *CreateUserForm) SetEmail(email string) error {
	return f.edit(func(v *CreateSystemUserRequest) { v.Email = email })
}

func (f *CreateUserForm) SetPHPVersion(version string) error {
	return f.edit(func(v *CreateSystemUserRequest) { v.PHPVersion = version })
}

func (f *CreateUserForm) SetNodeJSVersion(version string) error {
	return f.edit(func(v *CreateSystemUserRequest) { v.NodeJSVersion = version })
}

func (f *CreateUserForm) SetDatabaseVersion(version string) error {
	return f.edit(func(v *CreateSystemUserRequest) { v.DatabaseVersion = version })
}

// SelectDatabaseType switches the engine. The version resets to the first
// entry of the engine's list, or stays as it was when that list is empty.
func (f *CreateUserForm) SelectDatabaseType(engineName string) error {
	engine, ok := ParseDatabaseEngine(engineName)
	if !ok {
		return ErrInvalidDatabaseEngine
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.(FormEditing); !ok {
		return ErrFormLocked
	}
	f.values.DatabaseType = string(engine)
	if versions := f.options.For(engine.Category()); len(versions) > 0 {
		f.values.DatabaseVersion = versions[0]
	}
	return nil
}

// DatabaseEngine is the engine currently selected.
func (f *CreateUserForm) DatabaseEngine() DatabaseEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	engine, _ := ParseDatabaseEngine(f.values.DatabaseType)
	return engine
}

// DatabaseVersionOptions lists the versions of the selected engine.
func (f *CreateUserForm) DatabaseVersionOptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	engine, _ := ParseDatabaseEngine(f.values.DatabaseType)
	return f.options.For(engine.Category())
}

// Fill copies posted values into the form, database type first so its
// version reset does not clobber the posted version.
func (f *CreateUserForm) Fill(req *CreateSystemUserRequest) error {
	if req.DatabaseType != "" {
		if err := f.SelectDatabaseType(req.DatabaseType); err != nil {
			return err
		}
	}
	return f.edit(func(v *CreateSystemUserRequest) {
		v.Username = req.Username
		v.Email = req.Email
		if req.PHPVersion != "" {
			v.PHPVersion = req.PHPVersion
		}
		if req.NodeJSVersion != "" {
			v.NodeJSVersion = req.NodeJSVersion
		}
		if req.DatabaseVersion != "" {
			v.DatabaseVersion = req.DatabaseVersion
		}
	})
}

// Submit inserts the user. A submit while one is in flight, or after success,
// returns ErrSubmitInFlight. A blank username fails before any store call.
// On a store failure the form goes back to editing with the store's message.
func (f *CreateUserForm) Submit(ctx context.Context, creator SystemUserCreator) error {
	f.mu.Lock()
	if _, ok := f.state.(FormEditing); !ok {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	if strings.TrimSpace(f.values.Username) == "" {
		f.state = FormEditing{Err: UsernameRequiredMessage}
		f.mu.Unlock()
		return ErrUsernameRequired
	}
	req := f.values
	f.state = FormSubmitting{}
	f.mu.Unlock()

	err := creator.Create(ctx, &req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = FormEditing{Err: datastore.Message(err, CreateUserFallbackError)}
		return err
	}
	f.state = FormSucceeded{CloseAfter: f.closeAfter}
	return nil
}

// Complete waits out the confirmation delay, then runs the success callback.
func (f *CreateUserForm) Complete(ctx context.Context) error {
	f.mu.Lock()
	succeeded, ok := f.state.(FormSucceeded)
	onSuccess := f.onSuccess
	f.mu.Unlock()
	if !ok {
		return ErrFormNotSucceeded
	}

	if err := f.sleep(ctx, succeeded.CloseAfter); err != nil {
		return err
	}
	if onSuccess != nil {
		onSuccess()
	}
	return nil
}
