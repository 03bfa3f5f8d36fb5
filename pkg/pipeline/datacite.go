package pipeline

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// DataCite publisher recorded for every pipeline record.
const datacitePublisher = "arbor-ml.dev"

// DataciteIdentifier is one persistent identifier of the record.
type DataciteIdentifier struct {
	Identifier     string `json:"identifier"`
	IdentifierType string `json:"identifierType"`
}

type dataciteTypes struct {
	ResourceType        string `json:"resourceType"`
	ResourceTypeGeneral string `json:"resourceTypeGeneral"`
}

type dataciteName struct {
	Name string `json:"name"`
}

type dataciteContributor struct {
	Name            string `json:"name"`
	ContributorType string `json:"contributorType"`
}

type dataciteTitle struct {
	Title string `json:"title"`
}

type dataciteSubject struct {
	Subject string `json:"subject"`
}

type dataciteDescription struct {
	Description     string `json:"description"`
	DescriptionType string `json:"descriptionType"`
}

// dataciteAttributes is the "attributes" part of a DataCite request body,
// kernel 4.3.
type dataciteAttributes struct {
	Identifiers     []DataciteIdentifier  `json:"identifiers"`
	Types           dataciteTypes         `json:"types"`
	Creators        []dataciteName        `json:"creators"`
	Titles          []dataciteTitle       `json:"titles"`
	Publisher       string                `json:"publisher"`
	PublicationYear string                `json:"publicationYear"`
	Subjects        []dataciteSubject     `json:"subjects,omitempty"`
	Contributors    []dataciteContributor `json:"contributors,omitempty"`
	Version         string                `json:"version,omitempty"`
	Descriptions    []dataciteDescription `json:"descriptions,omitempty"`
}

// DataciteJSON renders the pipeline's metadata as a DataCite-compliant
// attributes payload, the body the backend forwards when minting or
// updating the pipeline's DOI.
func (p *Pipeline) DataciteJSON() ([]byte, error) {
	attrs := dataciteAttributes{
		Identifiers:     []DataciteIdentifier{{Identifier: p.doi, IdentifierType: "DOI"}},
		Types:           dataciteTypes{ResourceType: "AI/ML Pipeline", ResourceTypeGeneral: "Software"},
		Titles:          []dataciteTitle{{Title: p.title}},
		Publisher:       datacitePublisher,
		PublicationYear: p.year,
		Version:         p.version,
	}
	for _, author := range p.authors {
		attrs.Creators = append(attrs.Creators, dataciteName{Name: author})
	}
	for _, tag := range p.tags {
		attrs.Subjects = append(attrs.Subjects, dataciteSubject{Subject: tag})
	}
	for _, contributor := range p.contributors {
		attrs.Contributors = append(attrs.Contributors, dataciteContributor{Name: contributor, ContributorType: "Other"})
	}
	if p.description != "" {
		attrs.Descriptions = []dataciteDescription{{Description: p.description, DescriptionType: "Other"}}
	}

	payload, err := json.Marshal(attrs)
	if err != nil {
		return nil, errors.Wrap(err, "unable to serialize datacite attributes")
	}

	return payload, nil
}
