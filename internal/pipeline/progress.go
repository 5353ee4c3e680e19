package pipeline

// Phase labels the coarse milestones of a document run.
type Phase string

const (
	PhaseIngest      Phase = "ingest"
	PhaseTranslating Phase = "translating"
	PhaseStructuring Phase = "structuring"
	PhaseComplete    Phase = "complete"
)

// Progress is a coarse milestone event emitted during a run.
type Progress struct {
	Phase   Phase
	Percent int
	Message string
}

// Observer receives progress events. Implementations must be safe for
// concurrent use; the pipeline may emit from multiple goroutines during
// chunk translation.
type Observer interface {
	OnProgress(p Progress)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(p Progress)

func (f ObserverFunc) OnProgress(p Progress) { f(p) }

type multiObserver []Observer

func (m multiObserver) OnProgress(p Progress) {
	for _, o := range m {
		o.OnProgress(p)
	}
}

type nopObserver struct{}

func (nopObserver) OnProgress(Progress) {}
