package modules

// TransportState 播放状态
type TransportState int

const (
	TransportStopped TransportState = iota
	TransportPlaying
	TransportPaused
)

func (s TransportState) String() string {
	switch s {
	case TransportPlaying:
		return "Playing"
	case TransportPaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// Transport 全局播放时钟
//
// 时间线只接收全局时间，暂停、停止和变速都在这里完成。
type Transport struct {
	state   TransportState
	elapsed float64
	speed   float64
}

// NewTransport 创建停止状态的时钟
func NewTransport(speed float64) *Transport {
	if speed <= 0 {
		speed = 1
	}
	return &Transport{speed: speed}
}

// Play 开始或继续播放
func (t *Transport) Play() {
	t.state = TransportPlaying
}

// Pause 暂停，保留当前时间
func (t *Transport) Pause() {
	if t.state == TransportPlaying {
		t.state = TransportPaused
	}
}

// Toggle 在播放与暂停之间切换
func (t *Transport) Toggle() {
	if t.state == TransportPlaying {
		t.Pause()
	} else {
		t.Play()
	}
}

// Stop 停止并回到起点
func (t *Transport) Stop() {
	t.state = TransportStopped
	t.elapsed = 0
}

// Seek 跳转到指定时间，负数按 0 处理
func (t *Transport) Seek(elapsed float64) {
	if elapsed < 0 {
		elapsed = 0
	}
	t.elapsed = elapsed
}

// Advance 播放中按速度推进 dt 秒（真实时间）
func (t *Transport) Advance(dt float64) {
	if t.state != TransportPlaying || dt <= 0 {
		return
	}
	t.elapsed += dt * t.speed
}

// SetSpeed 设置速度倍率，非正数忽略
func (t *Transport) SetSpeed(speed float64) {
	if speed > 0 {
		t.speed = speed
	}
}

func (t *Transport) Speed() float64        { return t.speed }
func (t *Transport) Elapsed() float64      { return t.elapsed }
func (t *Transport) State() TransportState { return t.state }
func (t *Transport) IsPlaying() bool       { return t.state == TransportPlaying }
