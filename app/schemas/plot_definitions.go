/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package schemas

// PlotDefinitionsSchema gets the json schema for the plot definitions file
const PlotDefinitionsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": [
			"label",
			"person",
			"devices",
			"start",
			"stop"
		],
		"properties": {
			"label": {
				"type": "string",
				"minLength": 1
			},
			"person": {
				"type": "string",
				"minLength": 1
			},
			"devices": {
				"type": "array",
				"items": {
					"type": "string"
				},
				"minItems": 1
			},
			"start": {
				"type": "string",
				"pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2}$"
			},
			"stop": {
				"type": "string",
				"pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2}$"
			}
		},
		"additionalProperties": false
	}
}`
