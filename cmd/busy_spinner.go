package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type busyVisibilityMsg bool

type operationDoneMsg struct {
	err error
}

// busySpinnerModel shows a spinner only while the loading aggregator says so:
// a short burst of fast requests finishes without ever flashing the spinner.
type busySpinnerModel struct {
	spinner spinner.Model
	label   string
	run     tea.Cmd
	visible bool
	done    bool
	err     error
}

func newBusySpinnerModel(label string, run tea.Cmd) busySpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return busySpinnerModel{
		spinner: s,
		label:   label,
		run:     run,
	}
}

func (m busySpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m busySpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case busyVisibilityMsg:
		m.visible = bool(msg)
		return m, nil
	case operationDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m busySpinnerModel) View() string {
	if m.done || !m.visible {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// runWithBusySpinner executes fn while mirroring the aggregator's published
// flag into the terminal spinner.
func runWithBusySpinner(cmd *cobra.Command, app *app, label string, fn func() error) error {
	runCmd := func() tea.Msg {
		return operationDoneMsg{err: fn()}
	}

	p := tea.NewProgram(
		newBusySpinnerModel(label, runCmd),
		tea.WithInput(nil),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithContext(cmd.Context()),
	)

	// The aggregator sink must never block, so emissions hop through a
	// buffered channel before reaching the bubbletea program.
	visibility := make(chan bool, 16)
	cancel := app.aggregator.Subscribe(func(visible bool) {
		select {
		case visibility <- visible:
		default:
		}
	})

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		for visible := range visibility {
			p.Send(busyVisibilityMsg(visible))
		}
	}()

	finalModel, err := p.Run()
	cancel()
	close(visibility)
	<-pumpDone
	if err != nil {
		return err
	}

	result, ok := finalModel.(busySpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
