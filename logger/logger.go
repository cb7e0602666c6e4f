package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iryonetwork/patient-records/config"
)

type Log struct {
	doDebug bool
	sugar   *zap.SugaredLogger
}

// New builds the logger described by cfg.
func New(cfg *config.Config) (*Log, error) {
	var zc zap.Config
	if cfg.LogFormat == "json" {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stdout"}
	if cfg.LogOutput != "" {
		zc.OutputPaths = []string{cfg.LogOutput}
	}

	base, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return &Log{doDebug: cfg.Debug, sugar: base.Sugar()}, nil
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Log {
	return &Log{sugar: zap.NewNop().Sugar()}
}

// With returns a child logger carrying the given key/value pairs on every line.
func (l *Log) With(args ...interface{}) *Log {
	return &Log{doDebug: l.doDebug, sugar: l.sugar.With(args...)}
}

func (l *Log) Fatalf(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

func (l *Log) Println(v ...interface{}) {
	l.sugar.Info(v...)
}

func (l *Log) Printf(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l *Log) Errorf(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

func (l *Log) Debugln(v ...interface{}) {
	if l.doDebug {
		l.sugar.Debug(v...)
	}
}

func (l *Log) Debugf(format string, v ...interface{}) {
	if l.doDebug {
		l.sugar.Debugf(format, v...)
	}
}

func (l *Log) Sync() error {
	return l.sugar.Sync()
}
