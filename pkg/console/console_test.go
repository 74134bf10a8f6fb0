package console

import (
	"strings"
	"sync"
	"testing"

	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"
)

func TestRenderSavingsBars(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	out := RenderSavingsBars("Savings", []types.SavingsBar{
		{Label: "Storage", Amount: "$5,400.00", Ratio: 1},
		{Label: "Network", Amount: "$1,200.00", Ratio: 1200.0 / 5400.0},
		{Label: "Database", Amount: "$0.00", Ratio: 0},
	})

	require.Contains(t, out, "Storage")
	require.Contains(t, out, "$5,400.00")
	require.Contains(t, out, strings.Repeat("█", barWidth))
	require.Contains(t, out, strings.Repeat("█", 8))
	require.NotContains(t, out, strings.Repeat("█", barWidth+1))
}

func TestBarFor(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	require.Equal(t, "·", barFor(0))
	require.Equal(t, "█", barFor(0.001))
	require.Equal(t, strings.Repeat("█", barWidth), barFor(3))
}

func TestTableRender(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	table := NewConsole().CreateTable()
	table.AddColumn("Analyzer")
	table.AddColumn("Yearly")
	table.AddRow("EBS Volumes", "$120.00")

	out := table.Render()
	require.Contains(t, out, "Analyzer")
	require.Contains(t, out, "EBS Volumes")
	require.Contains(t, out, "$120.00")
}

func TestProgressHandleConcurrentIncrement(t *testing.T) {
	h := &progressHandle{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Increment("done")
		}()
	}
	wg.Wait()
	h.Stop()
}
