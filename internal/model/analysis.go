package model

// SerializedAnalysis is the canonical wire form of one template analysis.
//
// StylesFound is sorted ascending by canonical style name and is the index
// space for DynamicStyles and StyleCorrelations. Marshalling this struct
// with encoding/json yields byte-identical output for semantically
// identical analyses regardless of traversal order: struct field order is
// fixed and the encoder sorts the Blocks map by key.
type SerializedAnalysis struct {
	Template          SerializedTemplateInfo `json:"template" yaml:"template"`
	Blocks            map[string]string      `json:"blocks" yaml:"blocks"`
	StylesFound       []string               `json:"stylesFound" yaml:"stylesFound"`
	DynamicStyles     []int                  `json:"dynamicStyles" yaml:"dynamicStyles"`
	StyleCorrelations [][]int                `json:"styleCorrelations" yaml:"styleCorrelations"`
}

// AnalysisSummary holds per-template counts for display.
type AnalysisSummary struct {
	Template     string
	Blocks       int
	Styles       int
	Dynamic      int
	Correlations int
}
