package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/valter-silva-au/ai-coder/pkg/models"
	"pgregory.net/rapid"
)

func taskIDs(tasks []*models.Task) []string {
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}

func TestDecompose_Blog(t *testing.T) {
	tasks := NewTaskDecomposer().Decompose("블로그 만들어줘")

	want := []string{"db_design", "post_api", "comment_api", "frontend_list", "frontend_detail", "admin_panel"}
	if diff := cmp.Diff(want, taskIDs(tasks)); diff != "" {
		t.Errorf("task ids mismatch (-want +got):\n%s", diff)
	}
	if tasks[0].Description != "Design the blog database" {
		t.Errorf("tasks[0].Description = %q, want %q", tasks[0].Description, "Design the blog database")
	}
	for _, task := range tasks {
		if task.Status != models.StatusPending {
			t.Errorf("task %s status = %s, want pending", task.ID, task.Status)
		}
	}
}

func TestDecompose_Ecommerce(t *testing.T) {
	tasks := NewTaskDecomposer().Decompose("I need an ECommerce site")

	want := []string{"db_design", "user_auth", "product_api", "cart_api", "order_api", "frontend_product", "frontend_cart", "deployment"}
	if diff := cmp.Diff(want, taskIDs(tasks)); diff != "" {
		t.Errorf("task ids mismatch (-want +got):\n%s", diff)
	}
}

func TestDecompose_FirstRuleWins(t *testing.T) {
	tasks := NewTaskDecomposer().Decompose("쇼핑몰 with a blog")
	if len(tasks) != 8 {
		t.Fatalf("got %d tasks, want the 8 ecommerce tasks", len(tasks))
	}
	if tasks[len(tasks)-1].ID != "deployment" {
		t.Errorf("last task = %s, want deployment", tasks[len(tasks)-1].ID)
	}
}

func TestDecompose_Fallback(t *testing.T) {
	request := "아무거나"
	tasks := NewTaskDecomposer().Decompose(request)

	want := []*models.Task{{ID: GeneralTaskID, Description: request, Status: models.StatusPending}}
	if diff := cmp.Diff(want, tasks); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestDecompose_EmptyRequest(t *testing.T) {
	tasks := NewTaskDecomposer().Decompose("")
	if len(tasks) != 1 || tasks[0].ID != GeneralTaskID || tasks[0].Description != "" {
		t.Errorf("tasks = %+v, want one general task with empty description", tasks)
	}
}

func TestDecompose_ReturnsFreshTasks(t *testing.T) {
	d := NewTaskDecomposer()
	first := d.Decompose("blog")
	first[0].Status = models.StatusCompleted
	first[0].GeneratedCode = "x"

	second := d.Decompose("blog")
	if second[0] == first[0] {
		t.Fatal("Decompose returned the same task pointer twice")
	}
	if second[0].Status != models.StatusPending || second[0].GeneratedCode != "" {
		t.Errorf("second run task = %+v, want a fresh pending task", second[0])
	}
}

func TestRulesFromConfig(t *testing.T) {
	cfg := models.DecompositionConfig{Rules: []models.RuleConfig{
		{
			Name:     "chat",
			Triggers: []string{"chat", "메신저"},
			Tasks: []models.TaskRuleConfig{
				{ID: "ws_gateway", Description: "WebSocket gateway"},
				{ID: "message_store", Description: "Message storage"},
			},
		},
	}}

	rules := append(RulesFromConfig(cfg), DefaultRules...)
	d := NewTaskDecomposer(rules...)

	tasks := d.Decompose("a CHAT app with a blog")
	if diff := cmp.Diff([]string{"ws_gateway", "message_store"}, taskIDs(tasks)); diff != "" {
		t.Errorf("configured rule should take priority (-want +got):\n%s", diff)
	}

	tasks = d.Decompose("just a blog")
	if len(tasks) != 6 {
		t.Errorf("got %d tasks, want built-in blog rule", len(tasks))
	}
}

func TestDecompositionRule_IgnoresEmptyTrigger(t *testing.T) {
	rule := DecompositionRule{Triggers: []string{""}}
	if rule.Matches("anything") {
		t.Error("empty trigger should not match every request")
	}
}

// Feature: ai-coder, Property 4: Decomposition Determinism
// Decomposing the same request twice yields the same ids and descriptions.
func TestProperty_DecompositionDeterminism(t *testing.T) {
	d := NewTaskDecomposer()
	rapid.Check(t, func(t *rapid.T) {
		request := rapid.OneOf(
			rapid.StringMatching(`[a-z ]{0,30}`),
			rapid.SampledFrom([]string{"blog", "쇼핑몰", "ecommerce shop", "my 블로그"}),
		).Draw(t, "request")

		first, second := d.Decompose(request), d.Decompose(request)
		if len(first) == 0 {
			t.Fatal("Decompose returned no tasks")
		}
		if len(first) != len(second) {
			t.Fatalf("task count changed: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i].ID != second[i].ID || first[i].Description != second[i].Description {
				t.Fatalf("task %d differs: %+v vs %+v", i, first[i], second[i])
			}
		}
	})
}

// Feature: ai-coder, Property 5: Unrecognized Requests Become One General Task
// A request without any trigger yields exactly one general task whose
// description is the request.
func TestProperty_UnrecognizedRequestFallback(t *testing.T) {
	d := NewTaskDecomposer()
	rapid.Check(t, func(t *rapid.T) {
		request := rapid.StringMatching(`[0-9 !?.]{0,40}`).Draw(t, "request")

		tasks := d.Decompose(request)
		if len(tasks) != 1 {
			t.Fatalf("got %d tasks, want 1", len(tasks))
		}
		if tasks[0].ID != GeneralTaskID || tasks[0].Description != request {
			t.Fatalf("task = %+v, want general task with verbatim request", tasks[0])
		}
	})
}
