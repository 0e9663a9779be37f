package term

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/embercore/ember/internal/input"
)

// Source adapts a tcell terminal screen to the input.Source contract.
//
// Terminals report discrete key presses and no key-up, so every press
// is forwarded as a press immediately followed by a release. Holding a
// key shows up as repeated presses through the terminal's autorepeat;
// edge-triggered consumers see exactly one trigger per press either way.
type Source struct {
	log    *zap.Logger
	screen tcell.Screen
	events chan input.Event
	wg     sync.WaitGroup
}

func NewSource(log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{
		log:    log,
		events: make(chan input.Event, 128),
	}
}

// Open takes over the terminal and starts the reader goroutine.
func (s *Source) Open() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	screen.Clear()
	s.screen = screen
	s.wg.Add(1)
	go s.readLoop()
	return nil
}

// Close restores the terminal. PollEvent returns nil once the screen
// is finalized, which ends the reader goroutine.
func (s *Source) Close() {
	if s.screen == nil {
		return
	}
	s.screen.Fini()
	s.wg.Wait()
	s.screen = nil
}

// Poll drains the transitions that arrived since the last call.
func (s *Source) Poll() []input.Event {
	var evs []input.Event
	for {
		select {
		case ev := <-s.events:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

func (s *Source) readLoop() {
	defer s.wg.Done()
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		switch tev := ev.(type) {
		case *tcell.EventKey:
			k := translateKey(tev)
			if k == input.KeyNone {
				continue
			}
			s.send(input.Event{Key: k, Pressed: true})
			s.send(input.Event{Key: k, Pressed: false})
		case *tcell.EventResize:
			s.screen.Sync()
		}
	}
}

// send never blocks; a full queue drops the transition. The queue only
// fills when the frame loop has stalled for seconds.
func (s *Source) send(ev input.Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Warn("input queue full, dropping key", zap.Stringer("key", ev.Key))
	}
}

func translateKey(ev *tcell.EventKey) input.Key {
	switch ev.Key() {
	case tcell.KeyRune:
		return input.KeyRune(ev.Rune())
	case tcell.KeyEscape:
		return input.KeyEscape
	case tcell.KeyEnter:
		return input.KeyEnter
	case tcell.KeyTab:
		return input.KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return input.KeyBackspace
	case tcell.KeyUp:
		return input.KeyUp
	case tcell.KeyDown:
		return input.KeyDown
	case tcell.KeyLeft:
		return input.KeyLeft
	case tcell.KeyRight:
		return input.KeyRight
	case tcell.KeyHome:
		return input.KeyHome
	case tcell.KeyEnd:
		return input.KeyEnd
	case tcell.KeyPgUp:
		return input.KeyPgUp
	case tcell.KeyPgDn:
		return input.KeyPgDn
	case tcell.KeyDelete:
		return input.KeyDelete
	case tcell.KeyF1, tcell.KeyF2, tcell.KeyF3, tcell.KeyF4, tcell.KeyF5, tcell.KeyF6,
		tcell.KeyF7, tcell.KeyF8, tcell.KeyF9, tcell.KeyF10, tcell.KeyF11, tcell.KeyF12:
		return input.KeyF1 + input.Key(ev.Key()-tcell.KeyF1)
	default:
		return input.KeyNone
	}
}
