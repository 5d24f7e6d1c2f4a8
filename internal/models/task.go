package models

// Task is a to-do item. It has no identity beyond its position in the list.
type Task struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// NewTask creates an open task
func NewTask(text string) Task {
	return Task{Text: text, Done: false}
}

// DefaultTasks is the starter list used when a user has no stored tasks
// or their record could not be loaded.
func DefaultTasks() []Task {
	return []Task{
		NewTask("Prepare presentation"),
		NewTask("Wish mom a happy birthday"),
		NewTask("Study for DSA exam"),
		NewTask("Call the dentist"),
		NewTask("Take a break and relax"),
	}
}
