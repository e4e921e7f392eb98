// Package domain define os tipos do envio de candidatura (Submission,
// Attachment, Receipt), a porta ObjectStore e a taxonomia de erros.
//
// Não depende de net/http além dos códigos de status.
package domain
