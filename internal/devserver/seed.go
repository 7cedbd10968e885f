package devserver

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fieldline/internal/repo"
)

var defaultSources = []string{"Авито", "Сайт", "Рекомендация"}

var defaultProblems = []string{"Не включается", "Протечка", "Шумит", "Другое"}

// Seed provisions the dispatcher account and reference dictionaries in a
// fresh workspace database. It is idempotent.
func Seed(ctx context.Context, r repo.Repo, username, password string, now time.Time) error {
	if _, err := r.GetUser(ctx, username); err == nil {
		return nil
	} else if err != repo.ErrNotFound {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := r.CreateUser(ctx, username, string(hash), now); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	sources, err := r.ListDictionary(ctx, repo.TableAggregators)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		for _, name := range defaultSources {
			if _, err := r.CreateDictionaryItem(ctx, repo.TableAggregators, name, now); err != nil {
				return err
			}
		}
	}
	problems, err := r.ListDictionary(ctx, repo.TableProblems)
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		for _, name := range defaultProblems {
			if _, err := r.CreateDictionaryItem(ctx, repo.TableProblems, name, now); err != nil {
				return err
			}
		}
	}
	return nil
}
