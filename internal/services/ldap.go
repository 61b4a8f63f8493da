package services

import (
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/go-ldap/ldap/v3"
	"github.com/huangang/lvepanel/internal/config"
)

var ErrLDAPDisabled = errors.New("LDAP is not enabled")

type LDAPUser struct {
	DN       string
	Username string
	Email    string
	Nickname string
}

// LDAPService authenticates operators against a directory. Settings are read
// on every call so admin changes apply without a restart.
type LDAPService struct {
	configSvc *SystemConfigService
	fallback  *config.LDAPConfig
}

func NewLDAPService(configSvc *SystemConfigService, fallback *config.LDAPConfig) *LDAPService {
	return &LDAPService{configSvc: configSvc, fallback: fallback}
}

func (s *LDAPService) settings() config.LDAPConfig {
	return s.configSvc.LDAPSettings(s.fallback)
}

func (s *LDAPService) IsEnabled() bool {
	return s.settings().Enabled
}

// Authenticate authenticates a user against LDAP
func (s *LDAPService) Authenticate(username, password string) (*LDAPUser, error) {
	cfg := s.settings()
	if !cfg.Enabled {
		return nil, ErrLDAPDisabled
	}
	if password == "" {
		// an empty password would be an anonymous bind
		return nil, errors.New("invalid credentials")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var conn *ldap.Conn
	var err error
	if cfg.UseSSL {
		conn, err = ldap.DialTLS("tcp", addr, &tls.Config{ServerName: cfg.Host})
	} else {
		conn, err = ldap.Dial("tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}
	defer conn.Close()

	if cfg.BindDN != "" {
		if err := conn.Bind(cfg.BindDN, cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("failed to bind with service account: %w", err)
		}
	}

	searchRequest := ldap.NewSearchRequest(
		cfg.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		fmt.Sprintf(cfg.UserFilter, ldap.EscapeFilter(username)),
		[]string{"dn", "cn", "mail", "uid", "sAMAccountName"},
		nil,
	)

	result, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("LDAP search failed: %w", err)
	}
	if len(result.Entries) == 0 {
		return nil, errors.New("user not found in LDAP")
	}
	if len(result.Entries) > 1 {
		return nil, errors.New("multiple users found in LDAP")
	}

	entry := result.Entries[0]
	if err := conn.Bind(entry.DN, password); err != nil {
		return nil, errors.New("invalid credentials")
	}

	return ldapUserFromEntry(entry), nil
}

func ldapUserFromEntry(entry *ldap.Entry) *LDAPUser {
	user := &LDAPUser{
		DN:       entry.DN,
		Username: entry.GetAttributeValue("uid"),
		Email:    entry.GetAttributeValue("mail"),
		Nickname: entry.GetAttributeValue("cn"),
	}
	// Active Directory
	if user.Username == "" {
		user.Username = entry.GetAttributeValue("sAMAccountName")
	}
	return user
}
