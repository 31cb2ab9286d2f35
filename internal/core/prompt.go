package core

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/ai-coder/pkg/models"
)

const (
	// promptReferenceCount is how many top matches are quoted as style reference.
	promptReferenceCount = 2
	// promptReferenceRunes caps each quoted reference.
	promptReferenceRunes = 1000
)

// BuildPrompt renders the generation prompt for a task: what to build, the
// configured technology stack, up to two existing files as style reference
// and the fixed quality requirements.
func BuildPrompt(task *models.Task, stack models.TechStack, matches []models.CodeMatch) string {
	var b strings.Builder

	b.WriteString("Please complete the following task:\n\n")
	fmt.Fprintf(&b, "Task: %s\n\n", task.Description)

	b.WriteString("Technology stack:\n")
	fmt.Fprintf(&b, "- Frontend: %s\n", strings.Join(stack.Frontend, ", "))
	fmt.Fprintf(&b, "- Backend: %s\n", strings.Join(stack.Backend, ", "))
	fmt.Fprintf(&b, "- Database: %s\n\n", strings.Join(stack.Database, ", "))

	if len(matches) > 0 {
		b.WriteString("Existing related code:\n")
		for i, m := range matches {
			if i == promptReferenceCount {
				break
			}
			fmt.Fprintf(&b, "\nFile %d: %s\n```\n%s...\n```\n", i+1, m.FilePath, truncateRunes(m.Content, promptReferenceRunes))
		}
		b.WriteString("\nFollow the style of the existing code above so the result stays consistent.\n")
	}

	comments := "Clear comments"
	if lang := strings.TrimSpace(stack.CommentLanguage); lang != "" {
		comments = "Comments in " + lang
	}
	fmt.Fprintf(&b, `
Requirements:
1. Complete, runnable code
2. %s
3. Error handling
4. Security best practices
5. Testable structure

Return the result as a Markdown code block.
`, comments)
	return b.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
