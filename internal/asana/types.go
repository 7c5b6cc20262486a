package asana

// SubtypeSection marks a subtask that only groups other subtasks.
const SubtypeSection = "section"

type Task struct {
	GID             string        `json:"gid"`
	Name            string        `json:"name"`
	Completed       bool          `json:"completed"`
	CompletedAt     *string       `json:"completed_at"`
	ResourceSubtype string        `json:"resource_subtype"`
	CustomFields    []CustomField `json:"custom_fields,omitempty"`
}

// IsSection reports whether the task is a sub-section grouping.
func (t Task) IsSection() bool {
	return t.ResourceSubtype == SubtypeSection
}

type CustomField struct {
	GID             string     `json:"gid"`
	Name            string     `json:"name"`
	ResourceSubtype string     `json:"resource_subtype"`
	TextValue       *string    `json:"text_value"`
	EnumValue       *EnumValue `json:"enum_value"`
	DateValue       *DateValue `json:"date_value"`
	DisplayValue    *string    `json:"display_value"`
}

type EnumValue struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

type DateValue struct {
	Date     string  `json:"date"`
	DateTime *string `json:"date_time"`
}

type User struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Project struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

type Section struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

type nextPage struct {
	Offset string `json:"offset"`
	Path   string `json:"path"`
	URI    string `json:"uri"`
}

type envelope[T any] struct {
	Data     T         `json:"data"`
	NextPage *nextPage `json:"next_page"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
		Help    string `json:"help"`
	} `json:"errors"`
}
