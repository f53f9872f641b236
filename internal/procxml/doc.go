// Package procxml converts between XML documents and process trees.
//
// Plain XML maps elements to nodes, attributes to attributes and the
// character data of elements without element children to text.
// Documents rooted at a CPEE "properties" element are also understood:
// the process model is taken from dslx/description, and the endpoints
// and data elements sections are kept aside for the Preprocessor.
package procxml
