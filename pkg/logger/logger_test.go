package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/env"
	"go.uber.org/zap"
)

type LoggerSuite struct {
	suite.Suite
	dir string
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerSuite))
}

func (s *LoggerSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *LoggerSuite) TestLoadLoggerWritesFile() {
	path := filepath.Join(s.dir, "app.log")
	logger, err := LoadLogger(env.LoggerEnv{
		Level:      "info",
		FilePath:   path,
		MaxSize:    1,
		MaxAge:     1,
		MaxBackups: 1,
	})
	s.Require().NoError(err)

	logger.Debug("dropped below level")
	logger.Info("document uploaded", zap.String("index", "logs"))
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	s.Require().NoError(err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	s.Len(lines, 1)

	var entry map[string]interface{}
	s.Require().NoError(json.Unmarshal([]byte(lines[0]), &entry))
	s.Equal("document uploaded", entry["msg"])
	s.Equal("logs", entry["index"])
	s.Contains(entry, "timestamp")
}

func (s *LoggerSuite) TestLoadLoggerConsoleOnly() {
	logger, err := LoadLogger(env.LoggerEnv{Level: "debug", MaxSize: 1, MaxAge: 1, MaxBackups: 1})
	s.NoError(err)
	s.NotNil(logger)
}

func (s *LoggerSuite) TestLoadLoggerInvalidLevel() {
	logger, err := LoadLogger(env.LoggerEnv{Level: "loud", MaxSize: 1, MaxAge: 1, MaxBackups: 1})
	s.Error(err)
	s.Nil(logger)
}
