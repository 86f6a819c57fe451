package log

import "testing"

// 未调用 Init 时包级函数也必须可用，库代码和测试都会在初始化前打日志。
func TestLogBeforeInit(t *testing.T) {
	Info("info")
	Infof("infof %d", 1)
	Infow("infow", "key", "value")
	Warnf("warnf %s", "w")
	Error("error", nil)
	Errorf("errorf %v", nil)
	Sync()
}

func TestInitReplacesLogger(t *testing.T) {
	before := sugar
	Init("debug", "console", "")
	if sugar == before {
		t.Fatal("Init 应替换默认的 no-op logger")
	}
	Infof("initialized %s", "ok")
}
