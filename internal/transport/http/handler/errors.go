package handler

const (
	errInternalServer     = "Internal server error"
	errAllFieldsRequired  = "All fields are required"
	errEmailTaken         = "Email already registered"
	errInvalidCredentials = "Invalid email or password."
	errProductNotFound    = "Product not found"
	errQueryRequired      = "Query is required"
	errSearchUnavailable  = "Search is temporarily unavailable"
)
