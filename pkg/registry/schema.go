// Package registry stores registrants, organizations, donations and the
// audit trail of reminder runs.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

const userSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "email"],
  "properties": {
    "name": { "type": "string", "minLength": 1, "maxLength": 255 },
    "email": { "type": "string", "pattern": "^\\S+@\\S+\\.\\S+$", "maxLength": 255 },
    "dateOfBirth": { "type": "string", "pattern": "^(\\d{4}-\\d{2}-\\d{2})?$" },
    "mobileNumber": { "type": "string", "pattern": "^(\\+?\\d{10,15})?$" },
    "gender": { "type": "string", "maxLength": 20 },
    "ageGroup": { "type": "string", "maxLength": 20 },
    "maritalStatus": { "type": "string", "maxLength": 20 },
    "address": { "type": "string", "maxLength": 512 },
    "profileImage": { "type": "string", "maxLength": 1024 }
  }
}`

const organizationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["organizationName", "contactPerson", "email", "phoneNumber"],
  "properties": {
    "organizationName": { "type": "string", "minLength": 1, "maxLength": 255 },
    "contactPerson": { "type": "string", "minLength": 1, "maxLength": 255 },
    "email": { "type": "string", "pattern": "^\\S+@\\S+\\.\\S+$", "maxLength": 255 },
    "phoneNumber": { "type": "string", "pattern": "^\\d{10}$" },
    "website": { "type": "string", "pattern": "^(https?://[^\\s$.?#].[^\\s]*)?$", "maxLength": 1024 },
    "address": { "type": "string", "maxLength": 512 }
  }
}`

var (
	userLoader         = gojsonschema.NewStringLoader(userSchema)
	organizationLoader = gojsonschema.NewStringLoader(organizationSchema)
)

func ValidateUser(body []byte) error {
	return validate(userLoader, body)
}

func ValidateOrganization(body []byte) error {
	return validate(organizationLoader, body)
}

func validate(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
	}
	return nil
}
