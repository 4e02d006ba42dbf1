package pipeline

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func notify(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}

func notifyAll(sink ProgressSink, procs []string, stage Stage, status Status) {
	if sink == nil {
		return
	}
	for _, p := range procs {
		sink.OnEvent(Event{Procedure: p, Stage: stage, Status: status})
	}
}
