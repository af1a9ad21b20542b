// Package records exposes form schemas and stored records over net/http.
//
// The handler serves JSON under a base path (default /api): the schema, each
// form definition, record listing, submission, deletion, CSV export, an HTML
// preview of the form and a generated OpenAPI document. Submissions accept a
// JSON body ({"values": {...}, "details": [[...]]}) or the form-encoded post
// the HTML preview produces. Validation failures answer 422 with the full
// error list.
package records
