package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphbridge/pkg/graph"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// layoutSpinner shows which graph Graphviz is laying out and for how long.
// It stops on its own when ctx is cancelled.
type layoutSpinner struct {
	graph graph.ID
	nodes int
	out   io.Writer
	prog  *progress

	ctx     context.Context
	cancel  context.CancelFunc
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu    sync.Mutex
	width int
}

func newLayoutSpinner(ctx context.Context, logger *log.Logger, id graph.ID, nodes int, out io.Writer) *layoutSpinner {
	ctx, cancel := context.WithCancel(ctx)
	return &layoutSpinner{
		graph:   id,
		nodes:   nodes,
		out:     out,
		prog:    newProgress(logger),
		ctx:     ctx,
		cancel:  cancel,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// line renders one frame, e.g. "⠋ Laying out main.helper (4 nodes) 1.2s".
func (s *layoutSpinner) line(frame string) string {
	elapsed := time.Since(s.prog.start).Truncate(100 * time.Millisecond)
	return fmt.Sprintf("%s %s", styleIconSpinner.Render(frame),
		StyleDim.Render(fmt.Sprintf("Laying out %s (%d nodes) %s", s.graph, s.nodes, elapsed)))
}

// Start begins drawing frames in the background.
func (s *layoutSpinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-s.stop:
				return
			case <-ticker.C:
				l := s.line(spinnerFrames[i%len(spinnerFrames)])
				s.mu.Lock()
				fmt.Fprintf(s.out, "\r%s", l)
				s.width = max(s.width, len(l))
				s.mu.Unlock()
			}
		}
	}()
}

func (s *layoutSpinner) halt() {
	s.once.Do(func() {
		close(s.stop)
		<-s.stopped
		s.cancel()
		s.clear()
	})
}

func (s *layoutSpinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}

// Done stops the spinner and logs how long the layout took.
func (s *layoutSpinner) Done() {
	s.halt()
	s.prog.done("Laid out " + s.graph.String())
}

// Fail stops the spinner and reports that the layout of the graph failed.
func (s *layoutSpinner) Fail(err error) {
	s.halt()
	s.prog.logger.Debug("layout failed", "graph", s.graph, "err", err)
	printError("Layout of %s failed", s.graph)
}

// Cancelled reports whether the spinner ended because its context did.
func (s *layoutSpinner) Cancelled() bool {
	select {
	case <-s.stop:
		return false
	default:
		return s.ctx.Err() != nil
	}
}
