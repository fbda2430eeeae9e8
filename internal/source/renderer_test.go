package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// fakeRenderer serves canned HTML per URL so the session adapters can be
// tested without a browser.
type fakeRenderer struct {
	pages      map[string]string // url -> rendered document
	afterClick map[string]string // url -> document once a click landed
	failNav    map[string]bool   // urls whose navigation errors
	clickErr   error

	current string
	clicked bool
	navs    []string
	clicks  []string
}

var errNavFailed = errors.New("navigation failed")

func (f *fakeRenderer) Navigate(_ context.Context, url string, _ time.Duration) error {
	f.navs = append(f.navs, url)
	if f.failNav[url] {
		return errNavFailed
	}
	if _, ok := f.pages[url]; !ok {
		return fmt.Errorf("no page for %s", url)
	}
	f.current = url
	f.clicked = false
	return nil
}

func (f *fakeRenderer) Click(_ context.Context, selector string) error {
	f.clicks = append(f.clicks, selector)
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clicked = true
	return nil
}

func (f *fakeRenderer) HTML(_ context.Context) (string, error) {
	if f.current == "" {
		return "", errors.New("no page loaded")
	}
	if f.clicked {
		if doc, ok := f.afterClick[f.current]; ok {
			return doc, nil
		}
	}
	return f.pages[f.current], nil
}
