// Package logger expone el logger Zap del proceso.
//
// # Design Decisions
//
//   - Singleton: Init() una vez en main; L() devuelve el logger global.
//   - Inyección: los componentes (decoder, cache, http) reciben un *zap.Logger
//     explícito; si es nil usan Named(component) sobre el singleton.
//   - Context Scoping: el middleware HTTP guarda un logger con request_id en el
//     contexto; From(ctx) lo recupera.
//   - Environments: "dev" consola con colores, "prod" JSON.
//
// # Usage
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.From(ctx)
//	log.Debug("decoder built", logger.Subdomain(zdn), logger.ZoneID(zid))
//
// Nunca loguear el token crudo.
package logger
