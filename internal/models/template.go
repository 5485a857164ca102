package models

// Template is a reusable set of categories and variables.
type Template struct {
	ID          int64      `json:"id"`
	Name        string     `json:"templateName"`
	Description string     `json:"templateDescription"`
	Categories  []Category `json:"categories"`
	Variables   []Variable `json:"variables"`
	CreatedAt   Timestamp  `json:"created_at"`
}

// TemplateVariableInput is a variable created together with a template.
type TemplateVariableInput struct {
	Name     string           `json:"name"`
	Category VariableCategory `json:"category"`
}

// TemplateInput is the create body: existing categories and variables are
// referenced by id, new ones are embedded.
type TemplateInput struct {
	Name          string                  `json:"templateName"`
	Description   string                  `json:"templateDescription"`
	Categories    []int64                 `json:"categories"`
	NewCategories []CategoryInput         `json:"new_categories"`
	Variables     []int64                 `json:"variables"`
	NewVariables  []TemplateVariableInput `json:"new_variables"`
}
