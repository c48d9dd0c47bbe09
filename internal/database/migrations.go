package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"jobcard_portal/internal/logging"
)

// RunMigrations applies every statement in order. Each one is idempotent,
// so the whole list runs on every start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		createEnumTypes,
		createUsersTable,
		createProjectsTable,
		createProjectMembersTable,
		createProjectItemsTable,
		createWbsNodesTable,
		createJobcardTasksTable,
		createHseTables,
	}

	for i, migration := range migrations {
		logging.Logger.Debugf("running migration %d/%d", i+1, len(migrations))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	logging.Logger.Info("all migrations completed successfully")
	return nil
}

const createEnumTypes = `
DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'project_role_t') THEN
    CREATE TYPE project_role_t AS ENUM ('member', 'manager', 'admin');
  END IF;
END$$;

DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'jobcard_status_t') THEN
    CREATE TYPE jobcard_status_t AS ENUM ('open', 'in_progress', 'on_hold', 'done', 'cancelled');
  END IF;
END$$;

DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'hse_answer_t') THEN
    CREATE TYPE hse_answer_t AS ENUM ('yes', 'no', 'na');
  END IF;
END$$;
`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  email TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL DEFAULT '',
  subject TEXT NOT NULL DEFAULT '',
  is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  last_login_at TIMESTAMPTZ
);
`

const createProjectsTable = `
CREATE TABLE IF NOT EXISTS projects (
  number TEXT PRIMARY KEY,
  description TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const createProjectMembersTable = `
CREATE TABLE IF NOT EXISTS project_members (
  project_number TEXT NOT NULL REFERENCES projects(number) ON DELETE CASCADE,
  user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  role project_role_t NOT NULL,
  PRIMARY KEY (project_number, user_id)
);

CREATE INDEX IF NOT EXISTS idx_project_members_user_id ON project_members(user_id);
`

const createProjectItemsTable = `
CREATE TABLE IF NOT EXISTS project_items (
  project_number TEXT NOT NULL REFERENCES projects(number) ON DELETE CASCADE,
  sequence INT NOT NULL CHECK (sequence > 0),
  description TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (project_number, sequence)
);
`

// Parent and jobcard references stay NO ACTION rather than RESTRICT: a
// cascade from project_items removes whole subtrees in one statement, while
// deleting a single node that still has children or jobcards is refused.
const createWbsNodesTable = `
CREATE TABLE IF NOT EXISTS wbs_nodes (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  project_number TEXT NOT NULL,
  item_sequence INT NOT NULL,
  parent_id UUID REFERENCES wbs_nodes(id),
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  sort_order INT NOT NULL DEFAULT 0,
  FOREIGN KEY (project_number, item_sequence)
    REFERENCES project_items(project_number, sequence) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_wbs_nodes_item ON wbs_nodes(project_number, item_sequence);
CREATE UNIQUE INDEX IF NOT EXISTS uq_wbs_nodes_sibling_code
  ON wbs_nodes(project_number, item_sequence, COALESCE(parent_id, '00000000-0000-0000-0000-000000000000'::uuid), code);
`

const createJobcardTasksTable = `
CREATE TABLE IF NOT EXISTS jobcard_tasks (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  project_number TEXT NOT NULL,
  item_sequence INT NOT NULL,
  wbs_node_id UUID NOT NULL REFERENCES wbs_nodes(id),
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  status jobcard_status_t NOT NULL DEFAULT 'open',
  slug TEXT NOT NULL,
  created_by UUID REFERENCES users(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  FOREIGN KEY (project_number, item_sequence)
    REFERENCES project_items(project_number, sequence) ON DELETE CASCADE,
  UNIQUE (project_number, slug)
);

CREATE INDEX IF NOT EXISTS idx_jobcard_tasks_wbs_node_id ON jobcard_tasks(wbs_node_id);
CREATE INDEX IF NOT EXISTS idx_jobcard_tasks_status ON jobcard_tasks(project_number, status);
`

const createHseTables = `
CREATE TABLE IF NOT EXISTS hse_topics (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  name TEXT NOT NULL UNIQUE,
  sort_order INT NOT NULL DEFAULT 0,
  active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS hse_questions (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  topic_id UUID NOT NULL REFERENCES hse_topics(id) ON DELETE CASCADE,
  prompt TEXT NOT NULL,
  sort_order INT NOT NULL DEFAULT 0,
  active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_hse_questions_topic_id ON hse_questions(topic_id);

CREATE TABLE IF NOT EXISTS hse_responses (
  task_id UUID NOT NULL REFERENCES jobcard_tasks(id) ON DELETE CASCADE,
  question_id UUID NOT NULL REFERENCES hse_questions(id) ON DELETE CASCADE,
  answer hse_answer_t NOT NULL,
  comment TEXT NOT NULL DEFAULT '',
  responded_by UUID REFERENCES users(id) ON DELETE SET NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  PRIMARY KEY (task_id, question_id)
);
`
