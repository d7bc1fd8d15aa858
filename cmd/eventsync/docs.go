package main

//go:generate swag init -g cmd/eventsync/main.go -o docs

// @title           Event Sync API
// @version         0.1.0
// @description     Mirrors the itsukaralink events feed into a document store.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
