package timer

// Status 计时器状态
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Valid 是否为四种已知状态之一
func (s Status) Valid() bool {
	switch s {
	case StatusIdle, StatusRunning, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// Command 用户可发出的命令
type Command string

const (
	CmdStart       Command = "start"
	CmdPause       Command = "pause"
	CmdResume      Command = "resume"
	CmdReset       Command = "reset"
	CmdReconfigure Command = "reconfigure"
)
