package scanner

import "igreport/pkg/stats"

// Observer follows a scan as it runs
type Observer interface {
	ScanStarted(username string, limit int)
	PostProcessed(username string, processed, limit int)
	ScanFinished(username string, result *stats.ProfileStats, err error)
}

// Hooks adapts plain functions to Observer. Nil fields are skipped.
type Hooks struct {
	OnStart    func(username string, limit int)
	OnPost     func(username string, processed, limit int)
	OnFinished func(username string, result *stats.ProfileStats, err error)
}

func (h Hooks) ScanStarted(username string, limit int) {
	if h.OnStart != nil {
		h.OnStart(username, limit)
	}
}

func (h Hooks) PostProcessed(username string, processed, limit int) {
	if h.OnPost != nil {
		h.OnPost(username, processed, limit)
	}
}

func (h Hooks) ScanFinished(username string, result *stats.ProfileStats, err error) {
	if h.OnFinished != nil {
		h.OnFinished(username, result, err)
	}
}

// Observers fans events out to each non-nil observer in order
func Observers(list ...Observer) Observer {
	var out multiObserver
	for _, o := range list {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) ScanStarted(username string, limit int) {
	for _, o := range m {
		o.ScanStarted(username, limit)
	}
}

func (m multiObserver) PostProcessed(username string, processed, limit int) {
	for _, o := range m {
		o.PostProcessed(username, processed, limit)
	}
}

func (m multiObserver) ScanFinished(username string, result *stats.ProfileStats, err error) {
	for _, o := range m {
		o.ScanFinished(username, result, err)
	}
}
