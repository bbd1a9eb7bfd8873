/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package schemas

import (
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Validate validates a json document against the required json schema
func Validate(document []byte, schema string) (*gojsonschema.Result, error) {
	if len(document) == 0 {
		return nil, errors.New("document cannot be empty")
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(document)

	validatorResult, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, errors.Wrap(err, "unable to validate document")
	}

	return validatorResult, nil
}

// ErrorList provides a collection of errors for processing
type ErrorList struct {
	// The error list
	Errors []ErrReport `json:"errors"`
}

// ErrReport is used to wrap schema validation errors in a json object
type ErrReport struct {
	Field       string      `json:"field"`
	ErrorType   string      `json:"errortype"`
	Value       interface{} `json:"value"`
	Description string      `json:"description"`
}

// BuildErrorsString concatenates errors and builds pretty error strings
func BuildErrorsString(resultsErrors []gojsonschema.ResultError) ErrorList {

	var report ErrReport
	var errorSlice []ErrReport
	var errorList ErrorList

	for _, err := range resultsErrors {

		// err.Field() is not set for "required" error
		var field string
		if property, ok := err.Details()["property"].(string); ok {
			field = property
		} else {
			field = err.Field()
		}

		report.Field = field
		report.Description = err.Description()
		report.ErrorType = err.Type()
		report.Value = err.Value()
		errorSlice = append(errorSlice, report)
	}
	errorList.Errors = errorSlice

	return errorList
}
