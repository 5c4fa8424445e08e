// Package logger expone el zap singleton del proceso con scoping por
// contexto.
//
// Inicialización, una vez en main:
//
//	logger.Init(logger.Config{
//	    Env:   cfg.App.Env,            // "dev" consola, "prod" JSON
//	    Level: os.Getenv("LOG_LEVEL"), // "debug", "info", "warn", "error"
//	})
//	defer logger.Sync()
//
// El middleware de requests inyecta un logger con request_id vía
// ToContext; services y repos lo recuperan con From(ctx) y le cuelgan
// sus campos de dominio (warranty_id, user_id, transfer_id):
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("warranties.Activate"))
//	log.Info("warranty activated", logger.WarrantyID(id))
//
// Sin contexto (arranque, goroutines de fondo) se usa L() directo.
package logger
