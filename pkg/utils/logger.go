package utils

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
)

var Logger *log.Logger
var CronLogger *log.Logger

const (
	loggerPrefix     = "MS-MONITOR_OPS: "
	cronLoggerPrefix = "MS-CRON_MONITOR_OPS: "
	loggerFlags      = log.Ldate | log.Ltime | log.Lshortfile
)

var logFile *lumberjack.Logger

func init() {
	Logger = log.New(os.Stdout, loggerPrefix, loggerFlags)
	CronLogger = log.New(os.Stdout, cronLoggerPrefix, loggerFlags)
}

// InitLogger mirrors every log line into a rotating file at path.
// An empty path keeps console-only logging.
func InitLogger(path string) error {
	if path == "" {
		return nil
	}

	// Ensure the log directory exists
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	// Configure the rotating log file
	logFile = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,   // Max megabytes before rotation
		MaxBackups: 5,    // Max number of old log files to retain
		MaxAge:     30,   // Max days to retain old log files
		Compress:   true, // Compress old log files
	}

	// Create multi-writer to log to both file and console
	multiWriter := io.MultiWriter(os.Stdout, logFile)

	Logger.SetOutput(multiWriter)
	CronLogger.SetOutput(multiWriter)

	log.SetOutput(multiWriter)
	log.SetPrefix(loggerPrefix)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	return nil
}

// CloseLogger flushes and closes the rotating log file, if any.
func CloseLogger() {
	if logFile == nil {
		return
	}

	if err := logFile.Close(); err != nil {
		log.Printf("Failed to close log file: %v", err)
	}
	logFile = nil
}
