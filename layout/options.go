package layout

import "log/slog"

// Options 配置分页过程。
type Options struct {
	// Logger 接收截断、未知模板等告警；为空时使用 slog.Default()。
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
