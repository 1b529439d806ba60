// Package swagger models a Swagger 2.0 document as served by the
// documentation page.
//
// The top-level sections that the page post-processes (info, tags, schemes,
// definitions, securityDefinitions) are typed. Operations and schemas are
// kept as decoded JSON values (map[string]any, []any, scalars) because they
// come from annotation blocks whose shape is owned by the API author.
//
// A Document always serializes paths, definitions, parameters and responses,
// even when they are empty, so clients never see null for those sections:
//
//	doc := swagger.NewDocument(swagger.Definition{
//	    Info:     swagger.Info{Title: "Pets", Version: "1.0.0"},
//	    BasePath: "/",
//	})
//	data, _ := doc.JSON()
//
// Validate converts the document to OpenAPI 3 with kin-openapi and runs its
// structural validation.
//
// See: https://swagger.io/specification/v2/
package swagger
