// Package upload expõe o envio de candidaturas por HTTP.
//
// O handler resolve a chave do cliente, chama application.Service.Admit
// (configuração e rate limit), só então lê o multipart e chama Submit.
// Respostas são sempre JSON: {"success":true,"path":...} ou {"error":...}.
package upload
