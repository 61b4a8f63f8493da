package services

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/huangang/lvepanel/internal/models"
	"github.com/huangang/lvepanel/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const defaultLogRetentionDays = 30

var (
	globalDBMu sync.RWMutex
	globalDB   *gorm.DB
)

// InitSystemLogger sets the database LogInfo, LogWarning and LogError write to.
// Until it is called those functions only reach the process log.
func InitSystemLogger(db *gorm.DB) {
	globalDBMu.Lock()
	globalDB = db
	globalDBMu.Unlock()
}

func LogInfo(module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	writeLog("info", module, action, message, userID, ip, userAgent, extra)
}

func LogWarning(module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	writeLog("warning", module, action, message, userID, ip, userAgent, extra)
}

func LogError(module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	writeLog("error", module, action, message, userID, ip, userAgent, extra)
}

func writeLog(level, module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	globalDBMu.RLock()
	db := globalDB
	globalDBMu.RUnlock()
	if db == nil {
		return
	}

	var extraStr string
	if extra != nil {
		if b, err := json.Marshal(extra); err == nil {
			extraStr = string(b)
		}
	}

	entry := &models.SystemLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		Extra:     extraStr,
		CreatedAt: time.Now(),
	}
	if err := db.Create(entry).Error; err != nil {
		logger.Warn().Err(err).Str("module", module).Str("action", action).Msg("failed to write system log")
	}
}

type SystemLogService struct {
	db *gorm.DB
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db}
}

type SystemLogListRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Level     string `form:"level"`
	Module    string `form:"module"`
	Action    string `form:"action"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Search    string `form:"search"`
}

type SystemLogListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []models.SystemLog `json:"items"`
}

func (s *SystemLogService) List(req *SystemLogListRequest) (*SystemLogListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var logs []models.SystemLog
	var total int64

	query := s.db.Model(&models.SystemLog{})

	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Action != "" {
		query = query.Where("action LIKE ?", "%"+req.Action+"%")
	}
	if req.StartDate != "" {
		query = query.Where("created_at >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("created_at <= ?", req.EndDate+" 23:59:59")
	}
	if req.Search != "" {
		query = query.Where("message LIKE ?", "%"+req.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &SystemLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

func (s *SystemLogService) GetModules() ([]string, error) {
	var modules []string
	if err := s.db.Model(&models.SystemLog{}).Distinct("module").Pluck("module", &modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (s *SystemLogService) Create(log *models.SystemLog) error {
	return s.db.Create(log).Error
}

// CleanupOldLogs deletes logs older than the specified number of days
// Returns the number of deleted records
func (s *SystemLogService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoffTime := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoffTime).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// GetRetentionDays reads log_retention_days, 30 when unset or malformed.
func (s *SystemLogService) GetRetentionDays() int {
	return NewSystemConfigService(s.db).GetInt("log_retention_days", defaultLogRetentionDays)
}

func (s *SystemLogService) SetRetentionDays(days int) error {
	return NewSystemConfigService(s.db).Set("log_retention_days", strconv.Itoa(days))
}

// LogCleanupScheduler deletes system logs past their retention every night.
type LogCleanupScheduler struct {
	service *SystemLogService
	cron    *cron.Cron
}

func NewLogCleanupScheduler(db *gorm.DB) *LogCleanupScheduler {
	return &LogCleanupScheduler{service: NewSystemLogService(db)}
}

// Start runs one cleanup now, then schedules one at 03:00 daily.
func (s *LogCleanupScheduler) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc("0 3 * * *", s.RunOnce); err != nil {
		return err
	}
	s.RunOnce()
	s.cron.Start()
	logger.Info().Msg("[SystemLog] cleanup scheduler started")
	return nil
}

func (s *LogCleanupScheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce deletes logs older than the configured retention. A retention of
// zero or less disables cleanup.
func (s *LogCleanupScheduler) RunOnce() {
	retentionDays := s.service.GetRetentionDays()
	if retentionDays <= 0 {
		logger.Debug().Msg("[SystemLog] cleanup disabled (retention_days <= 0)")
		return
	}

	deleted, err := s.service.CleanupOldLogs(retentionDays)
	if err != nil {
		logger.Error().Err(err).Msg("[SystemLog] failed to cleanup old logs")
		return
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Int("retention_days", retentionDays).Msg("[SystemLog] cleaned up old logs")
	}
}
