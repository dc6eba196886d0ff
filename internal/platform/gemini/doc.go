// Package gemini provides the primary generation provider family,
// implemented directly against the Gemini REST API. It handles model
// discovery, the two invocation styles (generateContent and Imagen
// predict), and translation of error responses into the classification
// errors the generation driver understands.
package gemini
