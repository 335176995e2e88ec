package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop().Sugar()
)

// Init builds the process logger for the given environment. Anything other
// than "production" gets the human readable development encoder.
func Init(env string) {
	var cfg zap.Config
	switch env {
	case "production":
		cfg = zap.NewProductionConfig()
		cfg.Level.SetLevel(zap.InfoLevel)
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level.SetLevel(zap.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level.SetLevel(zap.DebugLevel)
	}
	cfg.InitialFields = map[string]interface{}{
		"service": "skin-track",
		"env":     env,
	}

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewExample()
	}
	SetCore(l.Core())
}

// SetCore swaps the sink, mainly so tests can observe log output.
func SetCore(core zapcore.Core) {
	mu.Lock()
	defer mu.Unlock()
	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debug(msg string, args ...interface{}) {
	L().Debugw(msg, fields(args)...)
}

func Info(msg string, args ...interface{}) {
	L().Infow(msg, fields(args)...)
}

func Warn(msg string, args ...interface{}) {
	L().Warnw(msg, fields(args)...)
}

func Error(msg string, args ...interface{}) {
	L().Errorw(msg, fields(args)...)
}

func Fatal(msg string, args ...interface{}) {
	L().Fatalw(msg, fields(args)...)
}

func Sync() {
	_ = L().Sync()
}

// fields accepts key/value pairs and bare errors in any order, so both
// logger.Error("msg", err) and logger.Info("msg", "key", v) work.
func fields(args []interface{}) []interface{} {
	out := make([]interface{}, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case error:
			out = append(out, zap.Error(v))
		case string:
			if i+1 < len(args) {
				out = append(out, v, args[i+1])
				i++
				continue
			}
			out = append(out, zap.String("detail", v))
		default:
			out = append(out, zap.Any("value", v))
		}
	}
	return out
}
