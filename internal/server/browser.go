package server

import (
	"fmt"
	"io"
	"sync"

	"github.com/pkg/browser"
	"go.uber.org/zap"
)

// Opener launches a URL in a browser.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

var quietBrowser sync.Once

// silenceBrowser keeps the launcher's own output off the terminal.
func silenceBrowser() {
	quietBrowser.Do(func() {
		browser.Stdout = io.Discard
		browser.Stderr = io.Discard
	})
}

type systemBrowser struct{}

func (systemBrowser) Open(url string) error {
	silenceBrowser()
	return browser.OpenURL(url)
}

// launchBrowser opens url in the background. Failures, panics included,
// are logged and dropped.
func (s *Server) launchBrowser(url string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Warn("browser launch failed", zap.Error(fmt.Errorf("panic: %v", r)))
			}
		}()
		if err := s.opener.Open(url); err != nil {
			s.log.Warn("browser launch failed", zap.Error(err))
		}
	}()
}
