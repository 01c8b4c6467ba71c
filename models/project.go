package models

// Project is a portfolio entry. ID is assigned by the store and never
// changes; the other fields are overwritten in place on edit.
type Project struct {
	ID        int    `gorm:"primaryKey;autoIncrement"`
	Title     string `gorm:"size:250;not null"`
	Subtitle  string `gorm:"size:250;not null"`
	ImgURL    string `gorm:"column:img_url;size:1000;not null"`
	GitHubURL string `gorm:"column:github_url;size:1000;not null"`
}

// TableName keeps the table name stable for both store backends.
func (Project) TableName() string { return "projects" }

// ProjectFields are the user-editable columns of a Project.
type ProjectFields struct {
	Title     string
	Subtitle  string
	ImgURL    string
	GitHubURL string
}

// Fields returns the editable columns of p.
func (p Project) Fields() ProjectFields {
	return ProjectFields{
		Title:     p.Title,
		Subtitle:  p.Subtitle,
		ImgURL:    p.ImgURL,
		GitHubURL: p.GitHubURL,
	}
}
