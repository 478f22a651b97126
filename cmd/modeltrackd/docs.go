package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           modeltrack API
// @version         1.0
// @description     HTTP API for tracking AI model metadata across Hugging Face and ModelScope.
//
// @contact.name   modeltrack maintainers
// @contact.url    https://github.com/your-org/modeltrack
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
