package view

import "github.com/jishaal/old.jishaal.com/internal/model"

// Bio is the author card shown on the home page.
type Bio struct {
	Author      string
	AuthorURL   string
	Role        string
	Employer    string
	EmployerURL string
	Blurb       string
	Location    string
	Picture     string
}

// NewBio fills a Bio from the site metadata, falling back to the author's
// details where the metadata leaves them out.
func NewBio(site model.SiteMetadata) Bio {
	b := Bio{
		Author:      site.Author,
		AuthorURL:   site.Bio.AuthorURL,
		Role:        site.Bio.Role,
		Employer:    site.Bio.Employer,
		EmployerURL: site.Bio.EmployerURL,
		Blurb:       site.Bio.Blurb,
		Location:    site.Bio.Location,
		Picture:     site.Bio.Picture,
	}
	if b.Picture == "" {
		b.Picture = "/me.png"
	}
	return b
}
