// Package azuretts provides a client for the Azure Cognitive Services
// text-to-speech REST API driven by SSML documents.
package azuretts
