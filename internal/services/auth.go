package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/huangang/lvepanel/internal/config"
	"github.com/huangang/lvepanel/internal/models"
	"github.com/huangang/lvepanel/internal/utils"
	"gorm.io/gorm"
)

const defaultRefreshHours = 720

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserDisabled       = errors.New("user is disabled")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// AuthService owns operator sign-in. The dashboard and the API both read the
// signed-in operator from the tokens it issues.
type AuthService struct {
	db          *gorm.DB
	ldapService *LDAPService
	jwtConfig   *config.JWTConfig
	configSvc   *SystemConfigService
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig, ldapCfg *config.LDAPConfig) *AuthService {
	configSvc := NewSystemConfigService(db)
	return &AuthService{
		db:          db,
		ldapService: NewLDAPService(configSvc, ldapCfg),
		jwtConfig:   jwtCfg,
		configSvc:   configSvc,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	AuthType string `json:"auth_type"` // local, ldap
}

type LoginResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
	User            *models.User
}

type RefreshResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
}

// Login authenticates an operator and opens a session: an access token plus
// a refresh token whose hash is stored.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	var user *models.User
	var err error

	if req.AuthType == "" {
		req.AuthType = "local"
	}

	switch req.AuthType {
	case "local":
		user, err = s.localAuth(req.Username, req.Password)
	case "ldap":
		user, err = s.ldapAuth(req.Username, req.Password)
	default:
		return nil, errors.New("invalid auth type")
	}

	if err != nil {
		return nil, err
	}

	accessHours := s.getAccessTokenExpireHours()
	refreshHours := s.getRefreshTokenExpireHours()

	token, err := utils.GenerateToken(user.ID, user.Username, user.Email, user.Role, accessHours)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	refreshExpireAt := time.Now().Add(time.Duration(refreshHours) * time.Hour)
	refreshRecord := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: refreshHash,
		ExpiresAt: refreshExpireAt,
	}
	if clientIP != "" {
		refreshRecord.CreatedByIP = clientIP
	}
	if userAgent != "" {
		refreshRecord.UserAgent = userAgent
	}
	if err := s.db.Create(&refreshRecord).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(user).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return &LoginResult{
		AccessToken:     token,
		AccessExpireAt:  time.Now().Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: refreshExpireAt,
		User:            user,
	}, nil
}

func (s *AuthService) Refresh(refreshToken string, clientIP, userAgent string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token required")
	}

	hash := hashRefreshToken(refreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ?", hash).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	if !stored.Usable(time.Now()) {
		return nil, ErrInvalidRefresh
	}

	var user models.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	accessHours := s.getAccessTokenExpireHours()
	refreshHours := s.getRefreshTokenExpireHours()

	newAccessToken, err := utils.GenerateToken(user.ID, user.Username, user.Email, user.Role, accessHours)
	if err != nil {
		return nil, err
	}

	newRefreshToken, newRefreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newRefresh := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: newRefreshHash,
		ExpiresAt: now.Add(time.Duration(refreshHours) * time.Hour),
	}
	if clientIP != "" {
		newRefresh.CreatedByIP = clientIP
	}
	if userAgent != "" {
		newRefresh.UserAgent = userAgent
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newRefresh).Error; err != nil {
			return err
		}
		if err := tx.Model(&stored).Updates(map[string]interface{}{
			"revoked_at":           now,
			"replaced_by_token_id": newRefresh.ID,
		}).Error; err != nil {
			return err
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &RefreshResult{
		AccessToken:     newAccessToken,
		AccessExpireAt:  time.Now().Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    newRefreshToken,
		RefreshExpireAt: newRefresh.ExpiresAt,
	}, nil
}

// RevokeRefreshToken ends the session behind refreshToken. Unknown or empty
// tokens are ignored.
func (s *AuthService) RevokeRefreshToken(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	hash := hashRefreshToken(refreshToken)
	now := time.Now()
	if err := s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", now).Error; err != nil {
		return err
	}

	return nil
}

func (s *AuthService) getAccessTokenExpireHours() int {
	defaultHours := s.jwtConfig.ExpireHour
	value := s.configSvc.GetWithDefault("auth_access_token_expire_hours", strconv.Itoa(defaultHours))
	hours, err := strconv.Atoi(value)
	if err != nil || hours <= 0 {
		return defaultHours
	}
	return hours
}

func (s *AuthService) getRefreshTokenExpireHours() int {
	value := s.configSvc.GetWithDefault("auth_refresh_token_expire_hours", strconv.Itoa(defaultRefreshHours))
	hours, err := strconv.Atoi(value)
	if err != nil || hours <= 0 {
		return defaultRefreshHours
	}
	return hours
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	tokenHash = hashRefreshToken(token)
	return token, tokenHash, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *AuthService) localAuth(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ? AND auth_type = ?", username, "local").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	if !utils.CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

func (s *AuthService) ldapAuth(username, password string) (*models.User, error) {
	ldapUser, err := s.ldapService.Authenticate(username, password)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.Where("username = ? AND auth_type = ?", ldapUser.Username, "ldap").First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Username: ldapUser.Username,
			Email:    ldapUser.Email,
			Nickname: ldapUser.Nickname,
			Role:     "user",
			AuthType: "ldap",
			IsActive: true,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"email":    ldapUser.Email,
		"nickname": ldapUser.Nickname,
	}).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByID retrieves an operator by ID
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateAdminIfNotExists creates the admin/admin operator when there is no admin.
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		hashedPassword, err := utils.HashPassword("admin")
		if err != nil {
			return err
		}

		admin := models.User{
			Username: "admin",
			Password: hashedPassword,
			Email:    "admin@cloudlinux.server.local",
			Nickname: "Administrator",
			Role:     "admin",
			AuthType: "local",
			IsActive: true,
		}

		return s.db.Create(&admin).Error
	}

	return nil
}

// AccessTokenHours is the current access token lifetime.
func (s *AuthService) AccessTokenHours() int {
	return s.getAccessTokenExpireHours()
}

func (s *AuthService) IsLDAPEnabled() bool {
	return s.ldapService.IsEnabled()
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return errors.New("user not found")
	}

	if user.AuthType != "local" {
		return errors.New("LDAP users cannot change password here")
	}

	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return errors.New("incorrect old password")
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.db.Model(&user).Update("password", hashedPassword).Error
}
