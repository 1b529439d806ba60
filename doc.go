// Package swaggerpage mounts a Swagger 2.0 document and the swagger-ui
// viewer on a mux.Router.
//
// CreatePage builds the document once from annotated sources and registers
// three GET routes under the configured path:
//
//	{path}/swagger.json   the document as JSON
//	{path}                302 redirect to {path}/index.html
//	{path}/{file}         files of the swagger-ui-dist bundle
//
// The viewer entry page (index.html, or swagger-initializer.js in newer
// bundles) is rewritten on the fly: the bundled petstore URL is replaced by
// the URL of the served document, and the optional validatorUrl and
// supportedSubmitMethods settings are injected into the viewer config.
//
// Basic usage:
//
//	r := mux.NewRouter()
//	err := swaggerpage.CreatePage(swaggerpage.PageOptions{
//	    Title:   "Pets API",
//	    Version: "1.0.0",
//	    Server:  r,
//	    Path:    "/docs",
//	    APIs:    []string{"./internal/api/*.go"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", r)
package swaggerpage
