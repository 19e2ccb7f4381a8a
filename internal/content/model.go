// Package content serves the read-only catalogue shown on the marketing site:
// published case studies and active solutions.
package content

import "time"

// CaseStudy is a client engagement shown on the projects page.
type CaseStudy struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Slug         string    `json:"slug" yaml:"slug"`
	Industry     string    `json:"industry" yaml:"industry"`
	Challenge    string    `json:"challenge" yaml:"challenge"`
	Solution     string    `json:"solution" yaml:"solution"`
	Results      []string  `json:"results" yaml:"results"`
	Technologies []string  `json:"technologies" yaml:"technologies"`
	ImageURL     *string   `json:"image_url" yaml:"image_url"`
	IsPublished  bool      `json:"is_published" yaml:"is_published"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// Solution is a service offering shown on the solutions page.
type Solution struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Slug         string    `json:"slug" yaml:"slug"`
	Description  string    `json:"description" yaml:"description"`
	Benefits     []string  `json:"benefits" yaml:"benefits"`
	Icon         *string   `json:"icon" yaml:"icon"`
	DisplayOrder int       `json:"display_order" yaml:"display_order"`
	IsActive     bool      `json:"is_active" yaml:"is_active"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

func (c CaseStudy) clone() CaseStudy {
	c.Results = append([]string(nil), c.Results...)
	c.Technologies = append([]string(nil), c.Technologies...)
	if c.ImageURL != nil {
		v := *c.ImageURL
		c.ImageURL = &v
	}
	return c
}

func (s Solution) clone() Solution {
	s.Benefits = append([]string(nil), s.Benefits...)
	if s.Icon != nil {
		v := *s.Icon
		s.Icon = &v
	}
	return s
}
