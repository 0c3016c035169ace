package betterstack

// ListResponse is one page of the monitor list.
type ListResponse struct {
	Data       []Monitor  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Prev  string `json:"prev"`
	Next  string `json:"next"`
}

type Monitor struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Attributes MonitorAttributes `json:"attributes"`
}

type MonitorAttributes struct {
	URL               string `json:"url"`
	PronounceableName string `json:"pronounceable_name"`
	MonitorType       string `json:"monitor_type"`
	Status            string `json:"status"`
	Paused            bool   `json:"paused"`
	Call              bool   `json:"call"`
	SMS               bool   `json:"sms"`
	Email             bool   `json:"email"`
}

// callUpdate is the PATCH body that toggles phone-call escalation.
type callUpdate struct {
	Call bool `json:"call"`
}
