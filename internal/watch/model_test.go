package watch

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeSource struct {
	job       Job
	err       error
	cancelErr error
	cancelled int
}

func (f *fakeSource) Get(context.Context, string) (Job, error) { return f.job, f.err }

func (f *fakeSource) Cancel(context.Context, string) (Job, error) {
	f.cancelled++
	if f.cancelErr != nil {
		return Job{}, f.cancelErr
	}
	f.job.Status = "pending"
	f.job.Progress = 0
	return f.job, nil
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestModelPollsUntilTerminal(t *testing.T) {
	src := &fakeSource{job: Job{ID: "gen_1", Kind: "generation", Status: "running", Progress: 30}}
	m := New(Options{Source: src, JobID: "gen_1"})

	m = run(t, m, m.Init())
	if !m.loaded || m.job.Progress != 30 {
		t.Fatalf("after first poll: %+v", m.job)
	}
	if !strings.Contains(m.View(), "running") {
		t.Fatalf("view missing status:\n%s", m.View())
	}

	src.job = Job{ID: "gen_1", Kind: "generation", Status: "completed", Progress: 100, ImageURL: "https://img.example/1.jpeg"}
	next, cmd := m.Update(jobMsg{job: src.job})
	m = next.(Model)
	if cmd != nil {
		t.Fatal("terminal job must stop polling")
	}
	if !strings.Contains(m.View(), "https://img.example/1.jpeg") {
		t.Fatalf("view missing result:\n%s", m.View())
	}
}

func TestModelCancelKey(t *testing.T) {
	src := &fakeSource{job: Job{ID: "train_1", Kind: "training", Status: "running", Progress: 60}}
	m := New(Options{Source: src, JobID: "train_1"})
	m = run(t, m, m.Init())

	next, cmd := m.Update(keyPress("c"))
	m = next.(Model)
	if !m.cancelling {
		t.Fatal("cancel key should mark the model cancelling")
	}
	if _, again := m.Update(keyPress("c")); again != nil {
		t.Fatal("second cancel while in flight must be ignored")
	}
	m = run(t, m, cmd)
	if src.cancelled != 1 || m.cancelling || m.job.Status != "pending" || m.job.Progress != 0 {
		t.Fatalf("after cancel: cancelled=%d model=%+v", src.cancelled, m.job)
	}
}

func TestModelCancelDropsInFlightPoll(t *testing.T) {
	src := &fakeSource{job: Job{ID: "train_1", Kind: "training", Status: "running", Progress: 40}}
	m := New(Options{Source: src, JobID: "train_1"})
	m = run(t, m, m.Init())
	stale := tickMsg{poll: m.poll}

	next, cmd := m.Update(keyPress("c"))
	m = next.(Model)
	m = run(t, m, cmd)
	if m.job.Status != "pending" {
		t.Fatalf("status after cancel = %q", m.job.Status)
	}
	if _, cmd := m.Update(stale); cmd != nil {
		t.Fatal("tick from before the cancel must not poll again")
	}
	if _, cmd := m.Update(jobMsg{job: Job{ID: "train_1", Status: "running", Progress: 42}, poll: stale.poll}); cmd != nil {
		t.Fatal("poll result from before the cancel must be dropped")
	}
}

func TestModelFailedCancelResumesSinglePoll(t *testing.T) {
	src := &fakeSource{
		job:       Job{ID: "gen_3", Kind: "generation", Status: "running", Progress: 10},
		cancelErr: &APIError{Status: 409, Code: "job_not_cancellable", Message: "job is completed"},
	}
	m := New(Options{Source: src, JobID: "gen_3"})
	m = run(t, m, m.Init())
	stale := tickMsg{poll: m.poll}

	for i := 0; i < 3; i++ {
		next, cmd := m.Update(keyPress("c"))
		m = next.(Model)
		next, cmd = m.Update(cmd())
		m = next.(Model)
		if cmd == nil {
			t.Fatal("failed cancel must resume polling")
		}
		if m.err == nil || m.cancelling {
			t.Fatalf("after failed cancel: err=%v cancelling=%v", m.err, m.cancelling)
		}
	}
	if src.cancelled != 3 {
		t.Fatalf("cancelled = %d, want 3", src.cancelled)
	}
	if _, cmd := m.Update(stale); cmd != nil {
		t.Fatal("earlier poll chain must stay stopped")
	}
	if _, cmd := m.Update(tickMsg{poll: m.poll}); cmd == nil {
		t.Fatal("current poll chain must keep fetching")
	}
}

func TestModelKeepsPollingOnError(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	m := New(Options{Source: src, JobID: "gen_2"})
	next, cmd := m.Update(jobMsg{err: src.err})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("errors must schedule another poll")
	}
	if !strings.Contains(m.View(), "connection refused") {
		t.Fatalf("view missing error:\n%s", m.View())
	}
}

func TestModelQuit(t *testing.T) {
	m := New(Options{Source: &fakeSource{}, JobID: "x"})
	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("q must quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q must return tea.Quit")
	}
}
