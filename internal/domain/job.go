package domain

// JobPosting is one element of the job board's "data" array.
type JobPosting struct {
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Location    string `json:"location"`
	Remote      bool   `json:"remote"`
	URL         string `json:"url"`
}
