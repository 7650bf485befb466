// Package enrich implements the optional model-assisted second pass
// over stored event records: a local LLM re-judges relevance, cleans
// titles, and refines the audience tags.
package enrich
