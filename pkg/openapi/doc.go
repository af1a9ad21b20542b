// Package openapi describes the record HTTP surface of a loaded schema as an
// OpenAPI 3 document. Each form contributes a submission schema built from its
// fields and detail columns plus the list, submit, delete, export and render
// operations served by components/records.
package openapi
