package logging

import (
	"bytes"
	"testing"

	"github.com/CherepinRO/my-organizer-db/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewLogger 测试默认日志记录器的创建
func TestNewLogger(t *testing.T) {
	logger := NewLogger()

	require.NotNil(t, logger)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

// TestGetLogger 测试获取默认日志记录器返回同一实例
func TestGetLogger(t *testing.T) {
	first := GetLogger()
	second := GetLogger()

	require.NotNil(t, first)
	assert.Same(t, first, second)
}

// TestSetLoggerLevel 测试调整默认日志记录器级别
func TestSetLoggerLevel(t *testing.T) {
	SetLoggerLevel(logrus.DebugLevel)
	assert.Equal(t, logrus.DebugLevel, GetLogger().GetLevel())

	SetLoggerLevel(logrus.InfoLevel)
	assert.Equal(t, logrus.InfoLevel, GetLogger().GetLevel())
}

// TestSetLoggerOutput 测试重定向默认日志记录器输出
func TestSetLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	SetLoggerOutput(&buf)

	GetLogger().Info("output redirected")

	assert.Contains(t, buf.String(), "output redirected")
}

// TestNewLoggerFromConfig 测试根据配置创建日志记录器
func TestNewLoggerFromConfig(t *testing.T) {
	tests := []struct {
		name          string
		cfg           config.LogConfig
		wantLevel     logrus.Level
		wantFormatter interface{}
	}{
		{
			name:          "json 格式 warn 级别",
			cfg:           config.LogConfig{Level: "warn", Format: "json", Output: "stdout"},
			wantLevel:     logrus.WarnLevel,
			wantFormatter: &logrus.JSONFormatter{},
		},
		{
			name:          "text 格式 debug 级别",
			cfg:           config.LogConfig{Level: "debug", Format: "text", Output: "stdout"},
			wantLevel:     logrus.DebugLevel,
			wantFormatter: &logrus.TextFormatter{},
		},
		{
			name:          "非法级别回退到 info",
			cfg:           config.LogConfig{Level: "verbose", Format: "json", Output: "stdout"},
			wantLevel:     logrus.InfoLevel,
			wantFormatter: &logrus.JSONFormatter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLoggerFromConfig(&tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, logger.GetLevel())
			assert.IsType(t, tt.wantFormatter, logger.Formatter)
		})
	}
}

// TestNewLoggerFromConfig_ServiceField 测试日志自动附加 service 字段
func TestNewLoggerFromConfig_ServiceField(t *testing.T) {
	logger, err := NewLoggerFromConfig(&config.LogConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.Info("hook check")

	assert.Contains(t, buf.String(), `"service":"my-organizer-db"`)
}
