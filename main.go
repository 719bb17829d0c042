// =============================================================================
// OBX Importer - Main Entry Point
// =============================================================================
//
// USAGE:
//   obx-importer convert       - Convert OBX files into quotation payloads
//   obx-importer validate      - Report problems in OBX files
//   obx-importer version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, the quotation engine, validation, export
//   - pkg/           : File handling and logging utilities
//
// =============================================================================

package main

import (
	"github.com/Fidge123/lexware-obx-importer/cmd"
)

func main() {
	cmd.Execute()
}
