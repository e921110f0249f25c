package domain

import (
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/mouse-blink/clientguard/internal/adapter"
	"github.com/mouse-blink/clientguard/internal/controller"
	m "github.com/mouse-blink/clientguard/internal/model"
)

type mockSourceFSAdapter struct {
	mock.Mock
}

func (a *mockSourceFSAdapter) Select(args adapter.SelectArgs) ([]m.Path, error) {
	ret := a.Called(args)
	paths, _ := ret.Get(0).([]m.Path)

	return paths, ret.Error(1)
}

func (a *mockSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	ret := a.Called(path)
	content, _ := ret.Get(0).([]byte)

	return content, ret.Error(1)
}

func (a *mockSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return a.Called(path, content, perm).Error(0)
}

func (a *mockSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	ret := a.Called(path)
	info, _ := ret.Get(0).(os.FileInfo)

	return info, ret.Error(1)
}

func (a *mockSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	ret := a.Called(base, target)
	rel, _ := ret.Get(0).(m.Path)

	return rel, ret.Error(1)
}

// recordingUI keeps everything the workflow displays.
type recordingUI struct {
	started int
	results []m.FileResult
	summary *m.Summary
	list    map[m.Path]int
	diffs   map[m.Path]string
	closed  int
	waited  int
}

func (u *recordingUI) Start(_ ...controller.StartOption) error {
	u.started++

	return nil
}

func (u *recordingUI) Close() { u.closed++ }
func (u *recordingUI) Wait()  { u.waited++ }

func (u *recordingUI) DisplayFileResult(result m.FileResult) {
	u.results = append(u.results, result)
}

func (u *recordingUI) DisplaySummary(summary m.Summary) {
	u.summary = &summary
}

func (u *recordingUI) DisplayList(usages map[m.Path]int) error {
	u.list = usages

	return nil
}

func (u *recordingUI) DisplayDiff(path m.Path, patch []byte) {
	if u.diffs == nil {
		u.diffs = make(map[m.Path]string)
	}

	u.diffs[path] = string(patch)
}

func (u *recordingUI) result(path m.Path) (m.FileResult, bool) {
	for _, r := range u.results {
		if r.Path == path {
			return r, true
		}
	}

	return m.FileResult{}, false
}
