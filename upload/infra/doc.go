// Package infra implementa domain.ObjectStore.
//
//   - SupabaseStore: API REST do Supabase Storage
//   - S3Store: qualquer endpoint compatível com S3 (AWS, Supabase S3, MinIO, SeaweedFS)
//   - MemoryStore: mapa em memória, para testes e para o example-server
package infra
