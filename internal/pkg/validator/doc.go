// Package validator validates request structs through struct tags.
//
// Usecases depend on the Validator interface; the go-playground/validator v10
// implementation reports failures as a field-to-message map keyed in
// snake_case.
package validator
