package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           llamagui control API
// @version         1.0
// @description     HTTP API for configuring, launching and supervising a local llama-server process.
//
// @contact.name   llamagui maintainers
// @contact.url    https://github.com/coremaven/llama.cpp-GUI
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
