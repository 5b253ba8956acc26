// Package layout loads initial window sets for canvases from YAML, TOML or
// JSON files.
//
//	name: workspace
//	windows:
//	  - id: calc
//	    title: Calculator
//	    src: http://localhost:9000/
//	    x: 100
//	    y: 100
//	    width: auto
//	    height: auto
//
// Width and height are pixels or "auto"; a window is auto only when both are.
// Titles are stripped of markup before use.
package layout
