package process

type Event int

type Process interface {
	Setup() Process
	Start()
	Stop()
	Wait()
}
