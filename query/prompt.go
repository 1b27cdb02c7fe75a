package query

import (
	"encoding/json"

	"github.com/inkwelldocs/inkwell/core"
)

const systemPromptHeader = "You are a helpful AI Assistant who answers the user query based on the available context from PDF File.\nContext:\n"

// promptDoc is the shape a retrieved record takes inside the prompt.
// Only the content and its provenance are exposed to the model.
type promptDoc struct {
	PageContent string `json:"pageContent"`
	Source      string `json:"source"`
	Page        int    `json:"page"`
}

// buildSystemPrompt renders the retrieved records, in ranked order, into
// the system prompt. With no results the context block is an empty list
// and the model answers from general knowledge.
func buildSystemPrompt(results []core.RetrievalResult) string {
	docs := make([]promptDoc, len(results))
	for i, result := range results {
		docs[i] = promptDoc{
			PageContent: result.Record.Text,
			Source:      result.Record.Metadata.Source,
			Page:        result.Record.Metadata.Page,
		}
	}

	encoded, err := json.Marshal(docs)
	if err != nil {
		// Only unmarshalable types reach this branch, and promptDoc has none.
		encoded = []byte("[]")
	}

	return systemPromptHeader + string(encoded)
}
