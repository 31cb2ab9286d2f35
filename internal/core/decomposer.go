package core

import (
	"strings"

	"github.com/valter-silva-au/ai-coder/pkg/models"
)

// GeneralTaskID identifies the single task produced for unrecognized requests.
const GeneralTaskID = "general_task"

// TaskTemplate is the id and description of one task a rule produces.
type TaskTemplate struct {
	ID          string
	Description string
}

// DecompositionRule maps trigger keywords to an ordered list of tasks. A
// rule matches when any trigger occurs in the request, ignoring case.
type DecompositionRule struct {
	Name     string
	Triggers []string
	Tasks    []TaskTemplate
}

// Matches reports whether the request contains one of the rule's triggers.
func (r DecompositionRule) Matches(request string) bool {
	lower := strings.ToLower(request)
	for _, trigger := range r.Triggers {
		if trigger == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(trigger)) {
			return true
		}
	}
	return false
}

// DefaultRules are the built-in decomposition rules, in priority order.
var DefaultRules = []DecompositionRule{
	{
		Name:     "ecommerce",
		Triggers: []string{"쇼핑몰", "ecommerce"},
		Tasks: []TaskTemplate{
			{ID: "db_design", Description: "Design the database schema"},
			{ID: "user_auth", Description: "User authentication API"},
			{ID: "product_api", Description: "Product management API"},
			{ID: "cart_api", Description: "Shopping cart API"},
			{ID: "order_api", Description: "Order processing API"},
			{ID: "frontend_product", Description: "Product listing page"},
			{ID: "frontend_cart", Description: "Shopping cart page"},
			{ID: "deployment", Description: "Docker and deployment setup"},
		},
	},
	{
		Name:     "blog",
		Triggers: []string{"블로그", "blog"},
		Tasks: []TaskTemplate{
			{ID: "db_design", Description: "Design the blog database"},
			{ID: "post_api", Description: "Post CRUD API"},
			{ID: "comment_api", Description: "Comment API"},
			{ID: "frontend_list", Description: "Post list page"},
			{ID: "frontend_detail", Description: "Post detail page"},
			{ID: "admin_panel", Description: "Admin panel"},
		},
	},
}

// TaskDecomposer turns a free-text request into an ordered list of tasks.
type TaskDecomposer interface {
	Decompose(request string) []*models.Task
}

// ruleDecomposer implements TaskDecomposer with a first-match rule table.
type ruleDecomposer struct {
	rules []DecompositionRule
}

// NewTaskDecomposer creates a TaskDecomposer that checks the given rules in
// order. With no rules, DefaultRules are used.
func NewTaskDecomposer(rules ...DecompositionRule) TaskDecomposer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &ruleDecomposer{rules: rules}
}

// RulesFromConfig converts user-defined rules into DecompositionRules.
func RulesFromConfig(cfg models.DecompositionConfig) []DecompositionRule {
	rules := make([]DecompositionRule, 0, len(cfg.Rules))
	for _, rc := range cfg.Rules {
		rule := DecompositionRule{
			Name:     rc.Name,
			Triggers: append([]string(nil), rc.Triggers...),
			Tasks:    make([]TaskTemplate, len(rc.Tasks)),
		}
		for i, tc := range rc.Tasks {
			rule.Tasks[i] = TaskTemplate{ID: tc.ID, Description: tc.Description}
		}
		rules = append(rules, rule)
	}
	return rules
}

// Decompose returns fresh pending tasks for the first matching rule, or a
// single general task carrying the request verbatim.
func (d *ruleDecomposer) Decompose(request string) []*models.Task {
	for _, rule := range d.rules {
		if !rule.Matches(request) {
			continue
		}
		tasks := make([]*models.Task, len(rule.Tasks))
		for i, tmpl := range rule.Tasks {
			tasks[i] = models.NewTask(tmpl.ID, tmpl.Description)
		}
		return tasks
	}
	return []*models.Task{models.NewTask(GeneralTaskID, request)}
}
