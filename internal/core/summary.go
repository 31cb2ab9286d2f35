package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/ai-coder/pkg/models"
)

// BuildSummary renders the human-readable run report that is printed and
// sent as a notification.
func BuildSummary(request string, finishedAt time.Time, completed, failed []*models.Task, reuseThreshold int) string {
	var b strings.Builder

	b.WriteString("\n🎯 **Run report**\n\n")
	fmt.Fprintf(&b, "**Request**: %s\n", request)
	fmt.Fprintf(&b, "**Finished at**: %s\n\n", finishedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "✅ **Completed tasks** (%d):\n", len(completed))
	for _, task := range completed {
		outcome := "generated"
		if task.Reused(reuseThreshold) {
			outcome = "reused"
		}
		fmt.Fprintf(&b, "• %s (%s)\n", task.Description, outcome)
		if task.OutputPath != "" {
			fmt.Fprintf(&b, "  file: %s\n", task.OutputPath)
		}
	}

	fmt.Fprintf(&b, "\n❌ **Failed tasks** (%d):\n", len(failed))
	for _, task := range failed {
		fmt.Fprintf(&b, "• %s\n", task.Description)
	}

	fmt.Fprintf(&b, "\n📊 **Totals**: succeeded %d, failed %d", len(completed), len(failed))
	return b.String()
}
