/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package schemas

// DeviceColorsSchema gets the json schema for the device color lookup file
const DeviceColorsSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "string",
		"pattern": "^#[0-9a-fA-F]{6}$"
	}
}`
